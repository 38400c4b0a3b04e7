package types

// Version is the relkeep build version. Overwritten by -ldflags at release time.
var Version = "dev"
