// Package command parses inbound chat messages into play/help intents and
// resolves them against the sound catalog.
package command

import (
	"errors"
	"math/rand"
	"regexp"

	"github.com/TobiTenno/hekbot/internal/catalog"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownSound      = errors.New("sound not found")
)

// Kind discriminates parsed intents.
type Kind int

const (
	// None means the message is not a command for us. Plain chat that
	// happens to start near the prefix stays silent.
	None Kind = iota
	Help
	Play
)

// Intent is the parsed form of an inbound message.
type Intent struct {
	Kind       Kind
	Collection string
	// Sound is empty when the user asked for a random pick.
	Sound string
}

// Router matches messages against the configured prefix and resolves sounds
// from the catalog. Stateless apart from reading the catalog.
type Router struct {
	cat    *catalog.Catalog
	helpRe *regexp.Regexp
	playRe *regexp.Regexp
}

// NewRouter compiles the command patterns for the given prefix. The prefix is
// escaped, so symbols like "!" or "$" are safe.
func NewRouter(prefix string, cat *catalog.Catalog) *Router {
	escaped := regexp.QuoteMeta(prefix)
	return &Router{
		cat:    cat,
		helpRe: regexp.MustCompile(`(?i)^` + escaped + `help`),
		playRe: regexp.MustCompile(`(?i)^` + escaped + `(\w+)(?:\s+(\w+))?`),
	}
}

// Parse classifies a message. Help takes priority over the play pattern. A
// message whose collection token is not in the catalog yields None, not an
// error: ordinary chat must never trigger a reply.
func (r *Router) Parse(content string) Intent {
	if r.helpRe.MatchString(content) {
		return Intent{Kind: Help}
	}

	m := r.playRe.FindStringSubmatch(content)
	if m == nil {
		return Intent{Kind: None}
	}

	if _, ok := r.cat.Collection(m[1]); !ok {
		return Intent{Kind: None}
	}

	return Intent{Kind: Play, Collection: m[1], Sound: m[2]}
}

// Select resolves a sound within a collection. An empty sound name picks
// uniformly at random among the collection's entries.
func (r *Router) Select(collection, sound string) (catalog.Sound, error) {
	coll, ok := r.cat.Collection(collection)
	if !ok {
		return catalog.Sound{}, ErrUnknownCollection
	}

	if sound == "" {
		sounds := coll.Sounds()
		if len(sounds) == 0 {
			return catalog.Sound{}, ErrUnknownSound
		}
		return sounds[rand.Intn(len(sounds))], nil
	}

	s, ok := coll.Sound(sound)
	if !ok {
		return catalog.Sound{}, ErrUnknownSound
	}
	return s, nil
}
