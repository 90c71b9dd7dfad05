package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

const (
	StakeStatusStaked           = "STAKED"
	StakeStatusUnstakeRequested = "UNSTAKE_REQUESTED"
	StakeStatusUnstaked         = "UNSTAKED"
	// PAYOUT_UNCONFIRMED: funds left custody but the local record could not be
	// confirmed; held out of the payout retry set until an operator resolves it.
	StakeStatusPayoutUnconfirmed = "PAYOUT_UNCONFIRMED"
)

const (
	MembershipActive    = "ACTIVE"
	MembershipCheckedIn = "CHECKED_IN"
)

// Reconciliation flag kinds.
const (
	ReconCheckInUnrecorded  = "CHECK_IN_UNRECORDED"  // venue funded, membership not transitioned
	ReconSpendUnrecorded    = "SPEND_UNRECORDED"     // spend computed, withdrawal insert failed
	ReconCheckOutIncomplete = "CHECK_OUT_INCOMPLETE" // withdrawal recorded, membership reset failed
	ReconPayoutUnconfirmed  = "PAYOUT_UNCONFIRMED"   // transfer sent, stake record not advanced
	ReconPayoutAmbiguous    = "PAYOUT_AMBIGUOUS"     // transfer outcome unknown
	ReconPayoutSkipped      = "PAYOUT_SKIPPED"       // unpayable record (no wallet address etc.)
)
