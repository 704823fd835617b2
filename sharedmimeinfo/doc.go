// Package sharedmimeinfo connects the registry to the [Shared MIME-info specification].
//
// Installed types are exported as package files into <data home>/mime/packages, which
// update-mime-database merges into the database desktop environments read. Sniffer rules
// become magic rules and extensions become globs.
//
// The subclasses of the database can be queried as well.
// For example; application/ld+json is a subclass of application/json, which, in turn, is a
// subclass of application/json5.
//
// [Shared MIME-info specification]: https://specifications.freedesktop.org/shared-mime-info-spec/0.22/
package sharedmimeinfo
