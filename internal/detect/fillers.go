package detect

// defaultFillers are the sentence-filler words stripped from the front of
// candidate book text. Preachers stack these freely ("well, let's all turn
// back over to First John"), and the rules' book capture swallows them
// because the real book name has no reliable left boundary in speech.
//
// Book words themselves ("john", "acts", "mark") must never appear here.
var defaultFillers = []string{
	"to", "the", "a", "an", "of", "in", "at", "on",
	"and", "or", "but", "so", "now", "then",
	"well", "okay", "ok", "oh", "um", "uh",
	"let", "lets", "let's", "us", "we", "you", "your", "i",
	"he", "she", "they", "him", "her", "them", "his", "their",
	"turn", "turning", "turned", "open", "opening",
	"go", "going", "look", "looking", "see",
	"read", "reading", "reads", "find",
	"quote", "quoted", "quoting", "wrote", "mentioned",
	"hear", "remember", "recall",
	"me", "my", "our", "with", "from", "back", "over", "again",
	"together", "everyone", "everybody",
	"bible", "bibles", "book", "books",
	"says", "say", "said", "it", "it's", "that", "that's", "this",
	"is", "was", "if", "would", "could", "can", "will", "please",
}
