package retrieval

// Canned replies for common greetings. Greetings bypass the corpus entirely
// and are checked on normalized input before any tokenizing.
var greetings = map[string]string{
	"hello":        "Hello! How can I assist you?",
	"hi":           "Hi there! How can I help?",
	"hey":          "Hey! What can I do for you?",
	"good morning": "Good morning! How's your day going?",
	"good evening": "Good evening! How can I help?",
}

// GreetingReply returns the canned reply for a normalized greeting and
// whether the input is a greeting at all. Callers that manage conversation
// state use this to keep greetings out of the query path.
func GreetingReply(normalized string) (string, bool) {
	reply, ok := greetings[normalized]
	return reply, ok
}
