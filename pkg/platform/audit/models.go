package audit

// Category groups events for retention and alerting.
type Category string

const (
	CategoryCompliance Category = "compliance"
	CategorySecurity   Category = "security"
	CategoryOperations Category = "operations"
)

// Event types carried on the token event stream.
const (
	EventTokenInitialized                    = "TokenInitialized"
	EventRoleUpdated                         = "RoleUpdated"
	EventPauseToggled                        = "PauseToggled"
	EventTokensMinted                        = "TokensMinted"
	EventTransferFeeUpdated                  = "TransferFeeUpdated"
	EventWithheldTokensWithdrawn             = "WithheldTokensWithdrawn"
	EventWithheldTokensWithdrawnFromAccounts = "WithheldTokensWithdrawnFromAccounts"
	EventRedemptionRequested                 = "RedemptionRequested"
	EventRedemptionStatusUpdated             = "RedemptionStatusUpdated"
	EventRedemptionFulfilled                 = "RedemptionFulfilled"
	EventRedemptionCancelled                 = "RedemptionCancelled"
	EventAddressBlacklisted                  = "AddressBlacklisted"
	EventAddressUnblacklisted                = "AddressUnblacklisted"
	EventTokensWiped                         = "TokensWiped"
)

// CategoryOf maps an event type to its category. Unknown types fall back to
// operations so a new event is never dropped from the compliance trail by
// being miscategorized as something rarer.
func CategoryOf(eventType string) Category {
	switch eventType {
	case EventAddressBlacklisted, EventAddressUnblacklisted, EventTokensWiped:
		return CategoryCompliance
	case EventTokenInitialized, EventRoleUpdated, EventPauseToggled:
		return CategorySecurity
	default:
		return CategoryOperations
	}
}
