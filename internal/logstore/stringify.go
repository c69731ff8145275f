package logstore

import "fmt"

func jsonStringify(v any) string {
	return fmt.Sprintf("%v", v)
}
