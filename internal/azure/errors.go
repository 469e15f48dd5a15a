/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// IsNotFound reports whether err is an Azure 404, such as a missing resource group
func IsNotFound(err error) bool {
	var azErr *azcore.ResponseError
	if !errors.As(err, &azErr) {
		return false
	}
	return azErr.StatusCode == http.StatusNotFound || azErr.ErrorCode == "ResourceGroupNotFound"
}
