package symbol_test

import (
	"fmt"

	"github.com/matzehuels/symbol/pkg/symbol"
)

func ExampleStore() {
	s := symbol.New()
	app, _ := s.Intern("app")
	db, _ := s.Intern("db")
	cache, _ := s.Intern("cache")

	_ = s.Append(app, db)
	_ = s.Append(app, cache)
	_ = s.Relate(cache, db, "reads")

	same, _ := s.Intern("app")
	fmt.Println(same == app)
	fmt.Println(s.Children(app))
	for _, e := range s.Edges() {
		fmt.Printf("%s -> %s %q\n", e.From, e.To, e.Label)
	}
	// Output:
	// true
	// [db cache]
	// app -> cache ""
	// app -> db ""
	// cache -> db "reads"
}
