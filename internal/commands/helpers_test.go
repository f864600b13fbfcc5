package commands

import "fmt"

func jsonf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
