package api

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

type Member struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Members   []Member `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

// Split is one member's share of a transaction. Name is filled in on responses.
type Split struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Amount string `json:"amount"`
}

// Share is a member's weight in a shares split.
type Share struct {
	UserID string `json:"userId"`
	Weight int64  `json:"weight"`
}

// Item is a line of an itemized bill. An empty AssignedTo means everyone.
type Item struct {
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	AssignedTo  []string `json:"assignedTo,omitempty"`
}

// SplitInput describes how a transaction total is divided. Which fields
// are read depends on SplitMode:
//
//	equal     Participants
//	exact     Splits
//	shares    Shares
//	itemized  Items and Participants
type SplitInput struct {
	Amount       string   `json:"amount"`
	SplitMode    string   `json:"splitMode"`
	Participants []string `json:"participants,omitempty"`
	Splits       []Split  `json:"splits,omitempty"`
	Shares       []Share  `json:"shares,omitempty"`
	Items        []Item   `json:"items,omitempty"`
}

type Transaction struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"groupId"`
	Description string  `json:"description"`
	PayerID     string  `json:"payerId"`
	PayerName   string  `json:"payerName"`
	Amount      string  `json:"amount"`
	SplitMode   string  `json:"splitMode"`
	Splits      []Split `json:"splits"`
	CreatedAt   int64   `json:"createdAt"`
	CreatedBy   string  `json:"createdBy"`
	Deleted     bool    `json:"deleted,omitempty"`
}

// ItemShare is one person's portion of an itemized line.
type ItemShare struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// PersonBreakdown details an itemized split for one person.
type PersonBreakdown struct {
	UserID   string      `json:"userId"`
	Subtotal string      `json:"subtotal"`
	Tax      string      `json:"tax"`
	Total    string      `json:"total"`
	Items    []ItemShare `json:"items"`
}

type Balance struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Paid    string `json:"paid"`
	Owes    string `json:"owes"`
	Balance string `json:"balance"`
}

type Transfer struct {
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
	ToID     string `json:"toId"`
	ToName   string `json:"toName"`
	Amount   string `json:"amount"`
}

// Settlement is a payment a member recorded against the suggested transfers.
type Settlement struct {
	ID         string `json:"id"`
	GroupID    string `json:"groupId"`
	FromUserID string `json:"fromUserId"`
	FromName   string `json:"fromName"`
	ToUserID   string `json:"toUserId"`
	ToName     string `json:"toName"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	CreatedBy  string `json:"createdBy"`
}
