// Package testutil provides an in-memory storage.Backend for tests.
//
//	mem := testutil.NewBackend()
//	gw := storage.NewGateway(mem, storage.Config{PublicURL: "https://cdn.test"}, logger.NewNop())
//	url, err := gw.UploadImage(ctx, strings.NewReader("jpeg"), "avatars")
//	_ = mem.Calls() // backend calls made so far
package testutil
