// Package config provides configuration parsing for vldom projects.
//
// The configuration lives in vldom.json or vldom.yaml at the project root.
// This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "name": "docs",
//	  "location": "memory",
//	  "paramChange": "update",
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "live": true
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "vldom"
//	  },
//	  "state": {
//	    "path": ".vldom/history.db"
//	  },
//	  "export": {
//	    "bucket": "docs-site",
//	    "prefix": "preview/",
//	    "region": "us-east-1",
//	    "paths": ["/", "/docs/intro"]
//	  }
//	}
//
// The YAML form uses the same keys.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.DevAddress())
package config
