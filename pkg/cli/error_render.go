package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jlrickert/hashdoc/pkg/hashdoc"
	"github.com/jlrickert/hashdoc/pkg/manifest"
)

func renderUserError(err error, deps *Deps) string {
	if err == nil {
		return ""
	}

	var fetchErr *manifest.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Status != 0 {
			return fmt.Sprintf("manifest %s returned status %d", fetchErr.URL, fetchErr.Status)
		}
		if isDebugLogLevel(deps) {
			return err.Error()
		}
		return fmt.Sprintf("manifest %s could not be fetched", fetchErr.URL)
	}

	var parseErr *manifest.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("manifest %s is not valid JSON", parseErr.URL)
	}

	switch {
	case errors.Is(err, hashdoc.ErrNoBindings):
		return "no hash bindings found; check the configured attribute names"
	case errors.Is(err, hashdoc.ErrCheckFailed):
		return "some hash bindings do not resolve"
	}

	return err.Error()
}

func isDebugLogLevel(deps *Deps) bool {
	if deps == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(deps.LogLevel), "debug")
}
