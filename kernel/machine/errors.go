package machine

import "errors"

// ErrNotExist is returned by FileSystem.Open when the named file does not
// exist.
var ErrNotExist = errors.New("machine: file does not exist")
