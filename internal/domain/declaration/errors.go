package declaration

import "errors"

var (
	ErrDeclarationNotFound     = errors.New("tax declaration not found")
	ErrDeclarationExists       = errors.New("tax declaration already exists for this financial year")
	ErrDeclarationNotDraft     = errors.New("tax declaration is no longer a draft")
	ErrDeclarationNotSubmitted = errors.New("tax declaration has not been submitted")
	ErrUnknownDeclaredSection  = errors.New("verified amount targets a section that was not declared")
)
