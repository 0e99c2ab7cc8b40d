// Package binding turns mapper structs into working data-access objects.
//
// A mapper is a struct whose exported func fields are its methods. The
// Registry parses a mapper's tagged statements when it is added and hands out
// instances whose func fields are filled by reflect.MakeFunc. Each call is
// routed to the mapped statement "<namespace>.<Field>" through a session.
//
//	type UserMapper struct {
//		_ struct{} `namespace:"users"`
//
//		FindByID func(ctx context.Context, id int64) (*User, error) `select:"SELECT * FROM users WHERE id = ?"`
//	}
//
//	if err := binding.AddMapper[UserMapper](ctx, reg); err != nil { ... }
//	users, err := binding.GetMapper[UserMapper](reg, sess)
//	u, err := users.FindByID(ctx, 42)
//
// The per-method call strategy is built on first use and cached per mapper
// type, so every instance shares it.
package binding
