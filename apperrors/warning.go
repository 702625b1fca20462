package apperrors

// PartialDataWarning is not an error: the profile is still usable but one source contributed nothing
type PartialDataWarning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func Warn(source string, err error) PartialDataWarning {
	return PartialDataWarning{Source: source, Message: err.Error()}
}
