package domain

import "fmt"

// Lines sent by the server. Each one is written as a single line on the wire.
const (
	WelcomeNotice        = "Welcome to chat"
	InvalidCommandNotice = "Invalid Command"
	SelfTargetNotice     = "Can't send message to yourself"
	RateLimitNotice      = "Message limit, wait 1 hour"
	BannedNotice         = "Your account was banned"
	QuitNotice           = QuitToken
)

func ChatLine(nickname, text string) string {
	return fmt.Sprintf("%s: %s", nickname, text)
}

func PrivateLine(from, text string) string {
	return fmt.Sprintf("private message from %s: %s", from, text)
}

func NicknameChangedNotice(nickname string) string {
	return fmt.Sprintf("Nickname changed to %s", nickname)
}

func NoSuchUserNotice(nickname string) string {
	return fmt.Sprintf("No user with nickname: %s", nickname)
}

func LeftNotice(nickname string) string {
	return fmt.Sprintf("%s has left!", nickname)
}
