package service

import (
	"errors"

	"github.com/teamconnect/go-services/internal/auth"
)

// Error kinds surfaced to the transport layer. Authorization and not-found
// conditions are detected before any mutation, so a caller seeing one of
// these knows no state changed. ErrPhysicalIO is the exception: it reports a
// blob write/delete failure and is never silently absorbed.
var (
	ErrUnauthenticated = auth.ErrUnauthenticated
	ErrForbidden       = auth.ErrForbidden
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("already exists")
	ErrPhysicalIO      = errors.New("file storage failure")
)
