package internal

import "errors"

var ErrEmailTaken = errors.New("email already registered")
var ErrUserNotFound = errors.New("user not found")
var ErrNoRowInserted = errors.New("no row inserted")
