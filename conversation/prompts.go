package conversation

// Bot prompt and reply texts. The conversation layer never explains why a
// value was rejected; it just asks again.
const (
	replyGoodbye      = "Goodbye!"
	promptAskName     = "Hello! What is your name?"
	promptAskEmail    = "Nice to meet you, %s! Please enter your email."
	promptAskPhone    = "Thanks! Now, enter your phone number."
	promptAskQuery    = "Now, you can ask your queries..."
	promptEmptyName   = "Please enter your name."
	promptEmptyQuery  = "Please enter your query."
	replyInvalidEmail = "Please enter a valid email address."
	replyInvalidPhone = "Please enter a valid phone number."
)

// Phrases that terminate a session from any state.
var exitPhrases = map[string]struct{}{
	"exit": {},
	"bye":  {},
	"quit": {},
}
