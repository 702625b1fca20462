package env

import "os"

const (
	Local = "local"
	Test  = "test"
)

// Current is read once at start up, an unset ENV means a developer machine
var Current = os.Getenv("ENV")

func IsProd() bool {
	return Current != "" && Current != Local && Current != Test
}

func GetEnv() string {
	if Current == "" {
		return Local
	}

	return Current
}
