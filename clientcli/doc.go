// Package clientcli provides a client library for kvfront servers.
//
// It lists, reads and creates entries over the JSON variant of the HTML
// front-end, asks the server which bearer token it sees, and drives the
// /measure endpoints to benchmark the server's KV latency. Profiles in a
// YAML file manage connections to several servers.
//
// # Basic Usage
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:8787",
//		Token:    "my-token",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = client.Put(ctx, clientcli.PutOptions{
//		Collection: clientcli.CollectionKeys,
//		Name:       "greeting",
//		Content:    "hello",
//	})
//
// # Benchmark
//
//	result, err := client.Bench(ctx, clientcli.BenchOptions{
//		Tokens: clientcli.FakeTokens(clientcli.DefaultBenchTokens),
//	})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile("~/.kvfront/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatList(os.Stdout, result)
package clientcli
