// Package datatable models the JSON document a GQL query engine returns.
//
// The engine speaks the Google Visualization data source protocol. A
// successful response looks like:
//
//	{
//	  "status": "ok",
//	  "table": {
//	    "cols": [{"id": "a", "label": "A", "type": "number", "pattern": ""}],
//	    "rows": [{"c": [{"v": 42, "f": "42.00"}]}]
//	  }
//	}
//
// and a failed one carries the reason instead of a table:
//
//	{"status": "error", "errors": [{"reason": "invalid_query", "message": "..."}]}
//
// Key design constraints:
//   - Cell fields are a sealed Value type (String, Number, Bool, Null);
//     nil means the field was absent, which is different from null.
//   - Numbers keep the literal JSON text the engine emitted, so comparing
//     against caller-supplied strings never depends on float formatting.
//   - Stringify is the only conversion from Value to comparison text.
package datatable
