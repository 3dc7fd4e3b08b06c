package models

import "errors"

var (
	// ErrValidation возвращается, если входные данные нарушают предусловия операции.
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication возвращается при неверных учётных данных или недействительном токене.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound возвращается, если запись с указанным идентификатором отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrCollaborator возвращается при сбое внешнего хранилища, блоб-хранилища или аутентификации.
	ErrCollaborator = errors.New("collaborator failure")
)
