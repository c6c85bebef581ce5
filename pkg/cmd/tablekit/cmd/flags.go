package cmd

// flags shared by the table subcommands

type flagOutput struct {
	Output string `flag:"-o,--output" help:"Path to write the result as CSV, - for stdout" default:"-"`
}

type flagChunkSize struct {
	ChunkSize int `flag:"--chunk-size" help:"Number of rows per chunk" default:"1024"`
}

type flagRegion struct {
	Region string `flag:"--region" help:"AWS region for s3:// sources" default:""`
}

type flagLiteralColumns struct {
	LiteralColumns []string `flag:"--literal-column" help:"Column holding serialized literals to decode as JSON" default:"-"`
}
