package main

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/TheRealTwizzy/raiderdle/internal/localday"
)

const maxBugReportBody = 64 << 10

func requestOffset(q url.Values) int {
	return localday.ParseOffset(q.Get("offset"))
}

func isValidCategory(name string) bool {
	if name == "" || len(name) > 32 {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// isProxyableURL accepts absolute http(s) URLs only.
func isProxyableURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func parseLimit(raw string, fallback, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}
