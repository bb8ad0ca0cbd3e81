package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/roster --output domain/roster --outpkg rostermock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name CacheInvalidator --dir ../domain/roster --output domain/roster --outpkg rostermock --filename cache_invalidator_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/player --output domain/player --outpkg playermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/alert --output domain/alert --outpkg alertmock --filename repository_mock.go
