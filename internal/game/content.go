package game

import "fmt"

// ContentKind discriminates the variants of Content.
type ContentKind int

const (
	ContentSymbol ContentKind = iota
	ContentImage
	ContentQuestionAnswer // reserved: never dealt, never matches
)

func (k ContentKind) String() string {
	switch k {
	case ContentSymbol:
		return "Symbol"
	case ContentImage:
		return "Image"
	case ContentQuestionAnswer:
		return "QuestionAnswer"
	default:
		return "Unknown"
	}
}

// Content is what a card shows when it is face up. Only the fields that
// belong to Kind are meaningful.
type Content struct {
	Kind ContentKind

	Symbol string // ContentSymbol: glyph name (e.g. "tram.fill")
	URL    string // ContentImage: remote image URL

	Question        string // ContentQuestionAnswer
	Answer          string // ContentQuestionAnswer
	ShowingQuestion bool   // ContentQuestionAnswer
}

// Symbol returns symbol content for the given glyph name.
func Symbol(name string) Content {
	return Content{Kind: ContentSymbol, Symbol: name}
}

// Image returns image content for the given URL.
func Image(url string) Content {
	return Content{Kind: ContentImage, URL: url}
}

// QuestionAnswer returns question/answer content.
func QuestionAnswer(question, answer string, showingQuestion bool) Content {
	return Content{
		Kind:            ContentQuestionAnswer,
		Question:        question,
		Answer:          answer,
		ShowingQuestion: showingQuestion,
	}
}

// Label returns a short display label for the content.
func (c Content) Label() string {
	switch c.Kind {
	case ContentSymbol:
		return c.Symbol
	case ContentImage:
		return c.URL
	case ContentQuestionAnswer:
		if c.ShowingQuestion {
			return c.Question
		}
		return c.Answer
	default:
		return ""
	}
}

func (c Content) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.Label())
}

// EqualContent reports whether two cards' content counts as a match: both
// images with the same URL, or both symbols with the same name. Every other
// pairing, including two QuestionAnswer values, is not a match.
func EqualContent(a, b Content) bool {
	switch {
	case a.Kind == ContentImage && b.Kind == ContentImage:
		return a.URL == b.URL
	case a.Kind == ContentSymbol && b.Kind == ContentSymbol:
		return a.Symbol == b.Symbol
	default:
		return false
	}
}
