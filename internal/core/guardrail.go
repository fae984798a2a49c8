package core

// BulkRefusal is the fixed reply to requests for bulk or sensitive data.
const BulkRefusal = "I'm sorry, I cannot fulfill that request. This is likely because it's a request for bulk data or sensitive information for which you do not have permission."

// RefuseBulkRequest answers any bulk or sensitive data request. The query is
// never inspected.
func RefuseBulkRequest(string) string {
	return BulkRefusal
}
