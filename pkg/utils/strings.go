// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

// StringPtr returns a pointer to s, for the optional fields of webhook
// responses.
func StringPtr(s string) *string {
	return &s
}

// CoalesceString returns the first non-empty value, or "" when all are empty.
func CoalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
