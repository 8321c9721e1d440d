package authz

// Authorize checks account's role against allowed. It performs no I/O and
// an empty allow-list admits every authenticated account.
func Authorize(account Account, allowed RoleSet) error {
	if len(allowed) == 0 || allowed.Contains(account.Role) {
		return nil
	}
	return &Error{
		Kind:     KindInsufficientRole,
		Required: allowed.Sorted(),
		Actual:   account.Role,
	}
}
