package execution

import "time"

type ActionStatus string

type StepStatus string

type StepType string

const (
	ActionStatusPlanned   ActionStatus = "planned"
	ActionStatusRunning   ActionStatus = "running"
	ActionStatusCompleted ActionStatus = "completed"
	ActionStatusFailed    ActionStatus = "failed"
)

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusSimulated StepStatus = "simulated"
	StepStatusSubmitted StepStatus = "submitted"
	StepStatusConfirmed StepStatus = "confirmed"
	StepStatusFailed    StepStatus = "failed"
)

const (
	// StepTypeFactoryCall calls the wallet factory.
	StepTypeFactoryCall StepType = "factory_call"
	// StepTypeWalletCall calls a method of a SushiWallet.
	StepTypeWalletCall StepType = "wallet_call"
	// StepTypeNativeTransfer sends ETH with empty calldata.
	StepTypeNativeTransfer StepType = "native_transfer"
	// StepTypeTokenTransfer calls transfer on an ERC-20.
	StepTypeTokenTransfer StepType = "token_transfer"
)

type Constraints struct {
	Deadline string `json:"deadline,omitempty"`
	Simulate bool   `json:"simulate"`
}

type ActionStep struct {
	StepID          string            `json:"step_id"`
	Type            StepType          `json:"type"`
	Status          StepStatus        `json:"status"`
	ChainID         string            `json:"chain_id"`
	Description     string            `json:"description,omitempty"`
	Method          string            `json:"method,omitempty"`
	Target          string            `json:"target"`
	Data            string            `json:"data"`
	Value           string            `json:"value"`
	ExpectedOutputs map[string]string `json:"expected_outputs,omitempty"`
	TxHash          string            `json:"tx_hash,omitempty"`
	BlockNumber     uint64            `json:"block_number,omitempty"`
	LogCount        int               `json:"log_count,omitempty"`
	Error           string            `json:"error,omitempty"`
	RevertReason    string            `json:"revert_reason,omitempty"`
}

type Action struct {
	ActionID    string         `json:"action_id"`
	IntentType  string         `json:"intent_type"`
	Status      ActionStatus   `json:"status"`
	ChainID     string         `json:"chain_id"`
	FromAddress string         `json:"from_address,omitempty"`
	ToAddress   string         `json:"to_address,omitempty"`
	InputAmount string         `json:"input_amount,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Constraints Constraints    `json:"constraints"`
	Steps       []ActionStep   `json:"steps"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewAction(actionID, intentType, chainID string, constraints Constraints) Action {
	now := time.Now().UTC().Format(time.RFC3339)
	return Action{
		ActionID:    actionID,
		IntentType:  intentType,
		Status:      ActionStatusPlanned,
		ChainID:     chainID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Constraints: constraints,
		Steps:       []ActionStep{},
	}
}

func (a *Action) Touch() {
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
