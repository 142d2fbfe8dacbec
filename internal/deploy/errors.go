// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"net/http"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/juju/errors"
)

// Error codes reported by the AWS APIs that the deployer reacts to.
const (
	codeNoSuchEntity     = "NoSuchEntity"
	codeNoSuchTagSet     = "NoSuchTagSet"
	codeResourceNotFound = "ResourceNotFoundException"
	codeResourceConflict = "ResourceConflictException"
	codeInvalidParameter = "InvalidParameterValueException"
)

// errorCode returns the API error code carried by err, or "".
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// isNotFound reports whether err says the requested entity does not exist,
// either through its error code or a bare 404 response.
func isNotFound(err error) bool {
	switch errorCode(err) {
	case codeNoSuchEntity, codeResourceNotFound:
		return true
	}
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == http.StatusNotFound
	}
	return false
}

// isRolePropagating reports whether CreateFunction was refused because a
// newly created role is not yet visible to Lambda.
func isRolePropagating(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != codeInvalidParameter {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "role")
}

// isUpdateInProgress reports whether a function update was refused because
// an earlier one has not finished.
func isUpdateInProgress(err error) bool {
	return errorCode(err) == codeResourceConflict
}
