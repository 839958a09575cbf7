// Package connectors holds the discovery side of the push client: the code that
// finds candidate documents in the source folders of configured connectors and
// hands them to the push pipeline.
//
// Discovery triggers live in subpackages and are wired in the run command.
package connectors
