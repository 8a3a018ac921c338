package api

const MaxDocumentSize = maxDocumentSize
