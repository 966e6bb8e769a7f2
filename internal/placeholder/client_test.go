package placeholder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListTodos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos" {
			t.Errorf("path = %q, want /todos", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"userId":1,"id":1,"title":"delectus aut autem","completed":false},
			{"userId":1,"id":2,"title":"quis ut nam","completed":true}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil, nil)

	todos, err := c.ListTodos(context.Background())
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}

	if len(todos) != 2 {
		t.Fatalf("len(todos) = %d, want 2", len(todos))
	}
	if todos[0].Title != "delectus aut autem" {
		t.Errorf("todos[0].Title = %q", todos[0].Title)
	}
	if !todos[1].Completed {
		t.Error("todos[1].Completed = false, want true")
	}
}

func TestListTodosRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil, nil)

	if _, err := c.ListTodos(context.Background()); err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}

func TestListTodosRejectsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil, nil)

	if _, err := c.ListTodos(context.Background()); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestListTodosPropagatesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	c := New(srv.URL, time.Second, nil, nil)

	if _, err := c.ListTodos(context.Background()); err == nil {
		t.Fatal("expected a transport error")
	}
}
