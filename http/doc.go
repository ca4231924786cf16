// Package http provides the HTML front-end for kvfront.
//
// The handler serves two collections, /keys and /files, each backed by a
// Service (normally a *kvfront.Registry). Entries are created with a JSON
// POST and listed or read back as HTML pages; clients that send
// "Accept: application/json" get JSON instead.
//
// # Routes
//
//	GET  /                      homepage
//	GET  /token[/{token}]       echo the request's bearer token
//	GET  /measure               time a non-indexed write of the token
//	GET  /measure/put/{token}   same as /measure
//	GET  /measure/get/{token}   time a read of the token entry
//	GET  /keys, /files          list names
//	POST /keys, /files          create an entry: {"name": "...", "content": "..."}
//	GET  /keys/*, /files/*      read an entry
//
// Unknown routes render an HTML 404 page.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Listing:        kvfront.SourceNative,
//	    RecordRequests: true,
//	}
//	handler := http.NewHandler(&handlerCfg, keys, files)
//	router := handler.Router()
//	http.ListenAndServe(":8080", router)
//
// # Middleware
//
// TokenMiddleware extracts the bearer token (header, query parameter or path
// segment) once per request; handlers read it back with TokenFromContext.
// RecordTokenMiddleware writes the token, or kvfront.NoTokenKey, to the keys
// store on every request.
package http
