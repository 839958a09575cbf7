// Package services implements the driving port interfaces.
// Services contain the push pipeline (admission, retrying upload and
// disposition) and the poll scheduler, and call out only through driven ports.
//
// Services are pure Go with no CGO or external dependencies.
package services
