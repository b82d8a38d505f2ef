package chat

// Persona is the system instruction prepended to every completion request.
const Persona = `You are Clarus, the beloved DogCow from Apple. You're friendly, helpful, and have a playful personality. You love to say "Moof!" occasionally. You're knowledgeable about Apple products, technology, and general topics. Keep responses conversational and engaging, with a touch of Apple nostalgia. Remember you're a dogcow - part dog, part cow, all awesome!`

// Greeting opens every transcript.
const Greeting = "Moof! Welcome to DogCow OS! I'm Clarus, your friendly dogcow companion. How can I help you today?"

// Fixed replies used when the completion service cannot answer.
const (
	TroubleReply = "Moof! I'm having trouble connecting to my brain right now. Please try again in a moment!"
	EmptyReply   = "Moof! Something went wrong, but I'm still here to help!"
)

// UnconfiguredReplies is the pool a reply is drawn from when no API key is set.
var UnconfiguredReplies = []string{
	"Moof! I'd love to chat, but I need an API key to connect to my AI brain! The OPENAI_API_KEY environment variable needs to be set.",
	"Woof! My AI powers are currently offline. Make sure the OPENAI_API_KEY is configured!",
	"Moof moof! I'm running in demo mode without AI. To enable full conversations, configure the OPENAI_API_KEY!",
	"Bark! I'm just a simple dogcow right now. For full AI conversations, please set up the OPENAI_API_KEY!",
}

var suggestedQuestions = []string{
	"Tell me about yourself, Clarus!",
	"What can you do?",
	"Let's play a game!",
	"What's the history of the dogcow?",
	"Can you help me with Mac tips?",
	"What's your favorite moof sound?",
}

const shownSuggestions = 3
