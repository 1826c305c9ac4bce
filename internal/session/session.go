// Package session handles saving/loading view state to/from sessions
package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/dense-analysis/nexus/internal/view"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "nexus"
	stateKey    = "viewState"
)

var sessionStore *sessions.CookieStore

// InitSessionStorage starts up session storage or crashes the program with an error
func InitSessionStorage(secretKey string) {
	if len(secretKey) == 0 {
		fmt.Fprintf(os.Stderr, "No SECRET_KEY variable set!\n")
		os.Exit(1)
	}

	sessionStore = sessions.NewCookieStore([]byte(secretKey))
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode
}

// LoadState returns the view state for the request.
//
// A new session, or one that can't be read, starts from the default state.
func LoadState(request *http.Request) view.State {
	session, sessionError := sessionStore.Get(request, sessionName)

	if sessionError != nil {
		return view.NewState()
	}

	if data, ok := session.Values[stateKey].(string); ok {
		state := view.NewState()

		if err := json.Unmarshal([]byte(data), &state); err == nil {
			return state
		}
	}

	return view.NewState()
}

func SaveState(writer http.ResponseWriter, request *http.Request, state view.State) error {
	data, err := json.Marshal(state)

	if err != nil {
		return err
	}

	// A corrupt cookie gives a new session, which is overwritten here.
	session, _ := sessionStore.Get(request, sessionName)
	session.Values[stateKey] = string(data)

	return session.Save(request, writer)
}

func ClearSession(writer http.ResponseWriter, request *http.Request) error {
	session, _ := sessionStore.Get(request, sessionName)

	for key := range session.Values {
		delete(session.Values, key)
	}

	return session.Save(request, writer)
}
