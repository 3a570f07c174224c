package gatekeeper

// Profile is the visible Telegram identity of the person being handled.
type Profile struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
}

// JoinRequest is an unattended request to enter the chat, carrying an
// optional profile statement (bio).
type JoinRequest struct {
	Profile
	ChatID int64
	Bio    string
}

type ActionKind int

const (
	ActionSendMessage ActionKind = iota
	ActionApproveJoin
	ActionDeclineJoin
)

// Button is one inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// Action describes one outgoing effect for the transport to execute, in
// order. The service decides; the transport stays a thin executor.
type Action struct {
	Kind      ActionKind
	ChatID    int64
	UserID    int64
	Text      string
	ParseMode string
	Buttons   []Button
}

func sendTo(chatID int64, text string) Action {
	return Action{Kind: ActionSendMessage, ChatID: chatID, Text: text}
}

func approveJoin(chatID, userID int64) Action {
	return Action{Kind: ActionApproveJoin, ChatID: chatID, UserID: userID}
}

func declineJoin(chatID, userID int64) Action {
	return Action{Kind: ActionDeclineJoin, ChatID: chatID, UserID: userID}
}
