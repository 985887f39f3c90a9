package repo

import "errors"

// ErrGroupExists is returned when creating a document whose (project, name, type) group already has rows.
var ErrGroupExists = errors.New("document group already exists")
