// Package preflight provides readiness checks for the external tools and
// filesystem paths the bot depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll once at startup and logs every result
//     so a misconfigured deployment fails loudly before polling begins.
//   - The CLI "tunebot deps" command uses individual check functions to
//     display tool availability.
package preflight
