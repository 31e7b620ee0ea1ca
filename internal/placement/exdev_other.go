//go:build !unix

package placement

// IsCrossDevice always reports false where EXDEV does not exist.
func IsCrossDevice(err error) bool {
	return false
}
