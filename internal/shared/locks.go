package shared

import "fmt"

// VendorNameKey builds redis keys for cached vendor directory lookups.
func VendorNameKey(vendorID string) string {
	return fmt.Sprintf("vendors:%s:name", vendorID)
}
