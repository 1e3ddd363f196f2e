package mcpserver

// NoteFormatContract describes how notes are shaped so that LLM consumers
// create content the store can link and search.
const NoteFormatContract = `# Quire Note Format Contract

A note is a record with a title, rich-text content, tags and an optional folder.

## Content

- Content is HTML as produced by a rich-text editor (` + "`" + `<p>` + "`" + `, ` + "`" + `<h1>` + "`" + `, ` + "`" + `<ul>` + "`" + `, ...).
  Plain text is accepted and shown as a single paragraph.
- Reference another note by its title in double brackets: ` + "`" + `[[Project Plan]]` + "`" + `.
  Matching ignores case and surrounding spaces. Markup inside the brackets is ignored.
- A reference to a title that does not exist yet is kept as text and links
  automatically once a note with that title is created and edited.
- Several notes may share a title; a reference links to all of them.

## Tags

- Tags are short labels such as ` + "`" + `work` + "`" + ` or ` + "`" + `meeting-notes` + "`" + `.
- Surrounding spaces are trimmed and duplicates on one note are dropped.

## Folders

- Folders nest without limit. A folder cannot be moved under itself or one of
  its descendants.
- Deleting a folder keeps its notes; they become unfiled.

## Attachments

- Attach images and PDFs with the ` + "`" + `attach_asset` + "`" + ` tool. It returns an
  ` + "`" + `html` + "`" + ` snippet ready to paste into the note content.
- Attachments are served from ` + "`" + `/attachments/<file>` + "`" + `; always use that absolute path.

## Example

` + "```" + `html
<h1>Weekly standup</h1>
<p>Attendees: Alice, Bob.</p>
<p><img src="/attachments/3f2a-whiteboard.jpg" alt="whiteboard"></p>
<ul><li>Alice to review the [[Design Doc]]</li></ul>
` + "```" + `
`
