package decision

// Reason explains a decision. Values are stable and rendered to clients.
type Reason string

const (
	ReasonAllowed          Reason = "allowed"
	ReasonAccountInactive  Reason = "account_inactive"
	ReasonMissingPerk      Reason = "missing_perk"
	ReasonUnauthorized     Reason = "unauthorized"
	ReasonMalformedPayload Reason = "malformed_payload"
	ReasonEventNotFound    Reason = "event_not_found"
	ReasonNotRegistered    Reason = "not_registered_or_expired"
)

// Decision is the tagged outcome of an authorization check. Denials are values,
// not errors.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

func Allow() Decision {
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
