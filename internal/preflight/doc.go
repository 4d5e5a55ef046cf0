// Package preflight provides readiness checks for the filesystem paths and
// external service that an import run depends on.
//
// These checks run in two contexts:
//   - The import pipeline calls RunAll before touching any state. A failed
//     directory check aborts the run as a configuration error.
//   - The CLI "pbrlib status" command uses the individual check functions
//     (CheckDirectoryAccess, CheckMixcloud) to display readiness.
//
// Mixcloud reachability is informational only; an import never fails because
// the service is down.
package preflight
