package consts

// MailboxDelimiter separates the segments of a mailbox path. SIEVE
// scripts written for Cyrus-style servers use '.' instead; the analyzer
// rejects those with a rewrite suggestion.
const MailboxDelimiter = '/'
