package cache

import "github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"

// IsUnavailable reports whether err is a backend failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, errors.ErrCodeCacheUnavailable)
}
