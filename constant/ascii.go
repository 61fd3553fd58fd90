package constant

// AsciiArtLogo is the application's ASCII art banner shown on the root help screen.
const AsciiArtLogo = `
  _ _                              _
 | (_)_ __   __ _  ___  _ __ ___ | |
 | | | '_ \ / _' |/ _ \| '__/ _ \| |
 | | | | | | (_| | (_) | | |  __/| |
 |_|_|_| |_|\__, |\___/|_|  \___||_|
            |___/
`
