package catchapi_test

import (
	"context"
	"fmt"

	catchapi "github.com/catchnotes/catchapi.go"
	"github.com/catchnotes/catchapi.go/internal/fakeapi"
)

func ExampleSession_Login() {
	server := fakeapi.NewServer("127.0.0.1:0")
	server.AddUser("harry", "p4ss", "harry@example.com")
	if err := server.Start(); err != nil {
		panic(err)
	}
	defer server.Stop() //nolint:errcheck

	ctx := context.Background()
	s, err := catchapi.New(server.URL())
	if err != nil {
		panic(err)
	}
	u, err := s.Login(ctx, "harry", "p4ss")
	if err != nil {
		panic(err)
	}
	fmt.Println(u.UserName, s.AuthMode())

	n, err := u.PostNote(ctx, "Harry says catch is da bomb #catch", nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(n.Text, n.Tags)

	// Output:
	// harry token
	// Harry says catch is da bomb #catch [catch]
}

func ExampleNoteIterator_All() {
	server := fakeapi.NewServer("127.0.0.1:0")
	server.AddUser("harry", "p4ss", "harry@example.com")
	server.SeedNotes("harry", 3)
	if err := server.Start(); err != nil {
		panic(err)
	}
	defer server.Stop() //nolint:errcheck

	ctx := context.Background()
	s, _ := catchapi.New(server.URL())
	u, err := s.Login(ctx, "harry", "p4ss")
	if err != nil {
		panic(err)
	}

	for n, err := range u.Notes().All(ctx) {
		if err != nil {
			panic(err)
		}
		fmt.Println(n.Text)
	}

	// Output:
	// note 3
	// note 2
	// note 1
}
