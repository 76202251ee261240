package httpapi

import (
	"context"
	"net/http"
)

// Handlers shared by every CRUD resource. Service methods do the validation;
// these only move JSON in and out.

func createHandler[In, T any](a *API, event string, fn func(context.Context, In) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := fn(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if event != "" {
			a.audit(r.Context(), event, map[string]any{"record": out})
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func getHandler[T any](fn func(context.Context, string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func updateHandler[In, T any](fn func(context.Context, string, In) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := fn(r.Context(), r.PathValue("id"), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteHandler(a *API, label, event string, fn func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := fn(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		if event != "" {
			a.audit(r.Context(), event, map[string]any{"id": id})
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": label + " deleted"})
	}
}

// actionHandler runs a body-less state transition on the record named by {id}.
func actionHandler[T any](a *API, event string, fn func(context.Context, string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		out, err := fn(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		a.audit(r.Context(), event, map[string]any{"id": id})
		writeJSON(w, http.StatusOK, out)
	}
}

// readHandler serves an aggregate with no input.
func readHandler[T any](fn func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listHandler serves a collection filtered by query parameters.
func listHandler[F, T any](parse func(*http.Request) F, fn func(context.Context, F) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context(), parse(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
