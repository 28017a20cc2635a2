package core

// Role mirrors models.UserRole without importing it; core packages stay
// free of transport and schema concerns.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStore    Role = "store"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// Principal identifies the caller of a core operation. Every operation
// that needs authorization receives one explicitly; no core code reads
// session state or globals.
type Principal struct {
	UserID uint
	Role   Role
	// StoreID is the store scope for store-admin principals, zero otherwise.
	StoreID uint
}

// IsDriver reports whether the principal is the given driver.
func (p Principal) IsDriver(driverID uint) bool {
	return p.Role == RoleDriver && p.UserID == driverID
}

// IsStoreAdmin reports whether the principal administers the given store.
func (p Principal) IsStoreAdmin(storeID uint) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return p.Role == RoleStore && p.StoreID == storeID
}
