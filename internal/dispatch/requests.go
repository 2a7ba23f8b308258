package dispatch

import (
	"io"
)

// Request is one of the commands accepted by the dispatcher.
// The set is closed: only types in this package implement it.
type Request interface {
	// Command names the request in logs.
	Command() string
	isRequest()
}

// Authed carries the session token of token-scoped requests.
type Authed struct {
	Token string
}

func (a Authed) token() string { return a.Token }

type tokenBearer interface{ token() string }

type RegisterRequest struct {
	Username string
	Password string
}

type LoginRequest struct {
	Username string
	Password string
}

type CreateEntryRequest struct {
	Authed
	Key   string
	Value string
	Notes *string
}

type ListEntriesRequest struct {
	Authed
}

// GetEntryRequest reveals the value of a single entry to its owner.
type GetEntryRequest struct {
	Authed
	Key string
}

type UpdateEntryRequest struct {
	Authed
	ID    string
	Value string
	Notes *string
}

type DeleteEntryRequest struct {
	Authed
	Key string
}

// ImportEntriesRequest reads key,value[,notes] records from CSV.
type ImportEntriesRequest struct {
	Authed
	CSV io.Reader
}

// GeneratePasswordRequest needs no session. A nil Length means
// generator.DefaultLength.
type GeneratePasswordRequest struct {
	Length    *int
	Uppercase bool
	Numbers   bool
	Symbols   bool
}

func (RegisterRequest) Command() string         { return "register" }
func (LoginRequest) Command() string            { return "login" }
func (CreateEntryRequest) Command() string      { return "create_password" }
func (ListEntriesRequest) Command() string      { return "get_all_passwords" }
func (GetEntryRequest) Command() string         { return "get_password" }
func (UpdateEntryRequest) Command() string      { return "update_password" }
func (DeleteEntryRequest) Command() string      { return "delete_password" }
func (ImportEntriesRequest) Command() string    { return "import_passwords" }
func (GeneratePasswordRequest) Command() string { return "generate_password" }

func (RegisterRequest) isRequest()         {}
func (LoginRequest) isRequest()            {}
func (CreateEntryRequest) isRequest()      {}
func (ListEntriesRequest) isRequest()      {}
func (GetEntryRequest) isRequest()         {}
func (UpdateEntryRequest) isRequest()      {}
func (DeleteEntryRequest) isRequest()      {}
func (ImportEntriesRequest) isRequest()    {}
func (GeneratePasswordRequest) isRequest() {}
