// Package cloze renders occlusion-marked card text. A marker of the form
// "£{cN: body}" names occlusion group N; the body may itself contain balanced
// braces. Rendering a question hides the active group behind a placeholder
// and shows every other group's body; rendering an answer shows all bodies.
package cloze
