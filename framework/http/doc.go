// Package http provides request and response helpers for component handlers.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	// Decode a JSON body into a struct
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Decode(&payload); err != nil { ... }
//
//	page := req.Query("page", "1")
//	if req.IsJSON() { ... }
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)  // raw JSON with status
//	res.Success(data)    // 200 {"data": ...}
//	res.NoContent()      // 204
//	res.NotFound()       // 404 {"message": "Not found."}
//	res.Fail(err)        // 500 {"message": ..., "code": ...}
package http
