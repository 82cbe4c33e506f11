// Package jsoncover compiles JSON Schema documents (2019-09, with draft-07
// fallbacks) into executable validator trees, validates JSON instances
// against them with Basic output, and measures how much of a schema one
// instance exercised.
//
// Design policy:
//   - Public API lives in the root package; the token engine is under internal/.
//   - Documents are decoded into an ordered model (jsonvalue) with numbers
//     kept as text, so comparisons are exact and error order is stable.
//   - Compiled schemas are immutable and shared; coverage state is per run.
//
// Typical usage:
//
//	c := jsoncover.NewCompiler(jsoncover.Options{})
//	s, err := c.Compile(ctx, "file:///schemas/order.json")
//	out := s.Validate(ctx, instance)
//	res := s.Cover(ctx, instance)
//	fmt.Println(res.Coverage.Percentage)
package jsoncover
