package common

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/ruteri/royalty-registry/common.Version=v1.2.3"
var Version = "dev"

const PackageName = "github.com/ruteri/royalty-registry"
