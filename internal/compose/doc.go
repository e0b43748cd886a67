// Package compose renders the operator-facing text of the confirmation
// protocol: the preview shown when an action is staged, and the messages
// shown after it is executed, cancelled or rejected.
//
// Every message exists in English, Hindi and Telugu. Requested locales are
// matched with a language.Matcher; anything unrecognised falls back to
// English. Numbers are formatted by the action package before they reach a
// template, so previews show exactly the values that will be recorded.
package compose
