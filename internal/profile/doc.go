// Package profile owns the single local user record and a directory of
// known users for search. There is no sign-in or authorization enforcement;
// the record exists so the UI and the CLI know who is acting.
package profile
