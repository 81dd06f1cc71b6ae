// Command sift probes video files in an incoming folder, decides whether
// each is a movie or an episode and which quality tier it belongs to, and
// copies or moves it under outgoing_root/<movies|tv>/<tier folder> with a
// descriptive name.
//
// Transfers are dry runs unless --apply is given. Exit codes: 0 success,
// 2 configuration, 3 inventory, 4 invalid io mode, 5 one or more items
// failed, 1 anything else.
package main
